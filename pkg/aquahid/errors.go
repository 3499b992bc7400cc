// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Tidemark Labs

package aquahid

import "errors"

// Sentinel errors returned by descriptor lookup, sessions and control
// transactions. Wrap with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrDeviceNotRecognized means no descriptor matches the given
	// vendor/product identity.
	ErrDeviceNotRecognized = errors.New("device not recognized")

	// ErrWrongSubDevice means the product is known but the opened interface
	// is not the telemetry one (e.g. a keyboard-emulation sub-device).
	ErrWrongSubDevice = errors.New("wrong sub-device interface")

	// ErrNoData means a sensor snapshot is stale or a configuration fetch
	// from the device failed before anything was written.
	ErrNoData = errors.New("no data")

	// ErrIoFailure means a configuration write to the device failed. The
	// device configuration is unchanged.
	ErrIoFailure = errors.New("write failed")

	// ErrMaybeApplied means the configuration write succeeded but the
	// follow-up commit report failed. The change may or may not have taken
	// effect; callers should re-read to verify.
	ErrMaybeApplied = errors.New("commit report failed, change possibly applied")

	// ErrInvalidFieldValue means a caller-supplied value is outside the
	// field's valid range.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrUnsupportedOperation means the requested field or channel does not
	// exist on this model.
	ErrUnsupportedOperation = errors.New("operation not supported by this model")

	// ErrSessionClosed is returned by operations on a detached session.
	ErrSessionClosed = errors.New("session closed")
)
