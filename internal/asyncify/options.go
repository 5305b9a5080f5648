package asyncify

// Options controls how functions are rewritten.
type Options struct {
	// Suffix is appended to renamed functions and identifies existing
	// asynchronous counterparts.
	Suffix string `mapstructure:"suffix"`
	// Rename enables renaming declarations and references with Suffix.
	Rename bool `mapstructure:"rename"`
	// TaskType is the envelope wrapped around results.
	TaskType string `mapstructure:"task_type"`
	// AwaitableTypes are result types that are already task-shaped.
	AwaitableTypes []string `mapstructure:"awaitable_types"`
	// CancellationTypes are parameter types accepted as the optional trailing
	// parameter of an existing counterpart.
	CancellationTypes []string `mapstructure:"cancellation_types"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Suffix:            "Async",
		Rename:            true,
		TaskType:          "Task",
		AwaitableTypes:    []string{"Task", "ValueTask"},
		CancellationTypes: []string{"CancellationToken"},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Suffix == "" {
		o.Suffix = d.Suffix
	}
	if o.TaskType == "" {
		o.TaskType = d.TaskType
	}
	if len(o.AwaitableTypes) == 0 {
		o.AwaitableTypes = d.AwaitableTypes
	}
	if len(o.CancellationTypes) == 0 {
		o.CancellationTypes = d.CancellationTypes
	}
	return o
}
