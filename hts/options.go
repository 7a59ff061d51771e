package hts

// Option configures how a store file is opened.
type Option func(*options)

type options struct {
	bolt        bool
	syncOnFlush bool
}

func defaultOptions() *options {
	return &options{}
}

// WithBoltBackend stores the hierarchy in a bolt database instead of the
// native container format. Files written by one backend cannot be opened by
// the other.
func WithBoltBackend() Option {
	return func(o *options) {
		o.bolt = true
	}
}

// WithSyncOnFlush fsyncs the file on every Flush and Close. Only meaningful
// for the native backend; bolt commits are already durable.
func WithSyncOnFlush() Option {
	return func(o *options) {
		o.syncOnFlush = true
	}
}
