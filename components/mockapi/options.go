package mockapi

import (
	"net/http"

	"go.uber.org/zap"
)

type GuardFunc func(r *http.Request) error

// Routes holds the path of every endpoint relative to the base path.
type Routes struct {
	List     string
	Children string
	Add      string
	Remove   string
	Upload   string
}

type Options struct {
	Routes Routes
	// ParentParam names both the child request parameter and the child
	// record field that references a parent.
	ParentParam    string
	FuzzyParam     string
	RequiredFields []string
	UploadAccept   string
	MaxUploadBytes int64
	Guard          GuardFunc
	Logger         *zap.Logger

	Store *Store
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Routes: Routes{
			List:     "/list",
			Children: "/children",
			Add:      "/add",
			Remove:   "/remove",
			Upload:   "/upload",
		},
		ParentParam:    "ParentID",
		FuzzyParam:     "Fuzzy",
		RequiredFields: []string{"Name"},
		UploadAccept:   ".csv",
		MaxUploadBytes: 8 << 20,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.Routes.List == "" {
		opts.Routes.List = defaults.Routes.List
	}
	if opts.Routes.Children == "" {
		opts.Routes.Children = defaults.Routes.Children
	}
	if opts.Routes.Add == "" {
		opts.Routes.Add = defaults.Routes.Add
	}
	if opts.Routes.Remove == "" {
		opts.Routes.Remove = defaults.Routes.Remove
	}
	if opts.Routes.Upload == "" {
		opts.Routes.Upload = defaults.Routes.Upload
	}
	if opts.ParentParam == "" {
		opts.ParentParam = defaults.ParentParam
	}
	if opts.FuzzyParam == "" {
		opts.FuzzyParam = defaults.FuzzyParam
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequiredFields != nil {
		opts.RequiredFields = append([]string{}, opts.RequiredFields...)
	}
	return opts
}

func WithRoutes(routes Routes) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Routes = routes
	}
}

func WithParentParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ParentParam = name
	}
}

func WithRequiredFields(fields ...string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RequiredFields = append([]string{}, fields...)
	}
}

func WithUploadAccept(accept string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.UploadAccept = accept
	}
}

func WithMaxUploadBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxUploadBytes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithStore serves an existing store instead of a fresh seeded one.
func WithStore(store *Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}
