// Package metadata implements wizard.MetadataSource for the supported
// providers: a static AWS catalog, the UnDistro API server and Hetzner Cloud.
//
// Every source answers the same metadata kinds. Listings the backend does
// not page itself are split locally with Paginate, so the wizard always sees
// 1-based pages and a total page count.
package metadata
