package inbox

import "context"

// Navigator moves the client to an in-app path without a full reload.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// NopNavigator ignores navigation requests.
type NopNavigator struct{}

func (NopNavigator) Navigate(context.Context, string) error { return nil }
