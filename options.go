package gopaginator

// Option configures a Controller.
type Option func(*options)

type options struct {
	initialPage int
	initialKey  string
	maxPageSize int
	logger      Logger
	metrics     MetricsCollector
}

func defaultOptions() options {
	return options{
		initialPage: 1,
		logger:      nopLogger{},
		metrics:     nopMetrics{},
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithInitialPage sets the page a numbered controller starts from and
// returns to on Load. Defaults to 1. Ignored by keyset controllers.
func WithInitialPage(page int) Option {
	return func(o *options) {
		o.initialPage = page
	}
}

// WithInitialKey sets the key a keyset controller starts after and returns
// to on Load. Defaults to the beginning of the dataset. Ignored by numbered
// controllers.
func WithInitialKey(key string) Option {
	return func(o *options) {
		o.initialKey = key
	}
}

// WithMaxPageSize caps the page size requested from the fetch function.
// By default the page size is used as given; a non-positive bound disables
// the cap.
func WithMaxPageSize(maxPageSize int) Option {
	return func(o *options) {
		o.maxPageSize = maxPageSize
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector. A nil collector keeps the no-op default.
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}
