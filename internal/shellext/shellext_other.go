//go:build !linux

package shellext

import "errors"

var errUnsupported = errors.New("shell integration is not supported on this platform")

func platformRegister() error   { return errUnsupported }
func platformUnregister() error { return nil }
