// Package form drives a wizard.Session through interactive terminal prompts.
//
// The Runner walks the session's steps in order. Every field is asked through
// a Prompter, so the same flow runs against the huh-based terminal prompter
// and against scripted prompters in tests. Option fields are backed by the
// session's pagers: the first page is fetched on demand and further pages
// are loaded when the user picks "Load more".
package form
