package workflow

import "errors"

var (
	ErrMissingApplication   = errors.New("workflow: missing application id")
	ErrCertificateRejected  = errors.New("workflow: certificate generation was rejected")
	ErrCertificateCallFails = errors.New("workflow: certificate function call failed")
)
