package async

import "context"

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunAll executes all tasks in parallel and waits for every one of them.
// The returned map holds one entry per task name; a nil value means the
// task succeeded. A failing task never stops the others.
func RunAll(ctx context.Context, tasks []Task) map[string]error {
	results := make(map[string]error, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	for range len(tasks) {
		res := <-resultChan
		results[res.name] = res.err
	}

	return results
}
