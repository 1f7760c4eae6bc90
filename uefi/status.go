// Copyright (c) The potato-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
)

// EFI_STATUS error bit
const EFI_ERROR = 1 << 63

// EFI_STATUS codes (Appendix D - Status Codes), error codes are returned with
// EFI_ERROR set.
const (
	EFI_SUCCESS              = 0
	EFI_LOAD_ERROR           = 1
	EFI_INVALID_PARAMETER    = 2
	EFI_UNSUPPORTED          = 3
	EFI_BAD_BUFFER_SIZE      = 4
	EFI_BUFFER_TOO_SMALL     = 5
	EFI_NOT_READY            = 6
	EFI_DEVICE_ERROR         = 7
	EFI_WRITE_PROTECTED      = 8
	EFI_OUT_OF_RESOURCES     = 9
	EFI_VOLUME_CORRUPTED     = 10
	EFI_VOLUME_FULL          = 11
	EFI_NO_MEDIA             = 12
	EFI_MEDIA_CHANGED        = 13
	EFI_NOT_FOUND            = 14
	EFI_ACCESS_DENIED        = 15
	EFI_NO_RESPONSE          = 16
	EFI_NO_MAPPING           = 17
	EFI_TIMEOUT              = 18
	EFI_NOT_STARTED          = 19
	EFI_ALREADY_STARTED      = 20
	EFI_ABORTED              = 21
	EFI_ICMP_ERROR           = 22
	EFI_TFTP_ERROR           = 23
	EFI_PROTOCOL_ERROR       = 24
	EFI_INCOMPATIBLE_VERSION = 25
	EFI_SECURITY_VIOLATION   = 26
	EFI_CRC_ERROR            = 27
	EFI_END_OF_MEDIA         = 28
	EFI_END_OF_FILE          = 31
	EFI_INVALID_LANGUAGE     = 32
	EFI_COMPROMISED_DATA     = 33
)

var statusNames = map[uint64]string{
	EFI_LOAD_ERROR:           "EFI_LOAD_ERROR",
	EFI_INVALID_PARAMETER:    "EFI_INVALID_PARAMETER",
	EFI_UNSUPPORTED:          "EFI_UNSUPPORTED",
	EFI_BAD_BUFFER_SIZE:      "EFI_BAD_BUFFER_SIZE",
	EFI_BUFFER_TOO_SMALL:     "EFI_BUFFER_TOO_SMALL",
	EFI_NOT_READY:            "EFI_NOT_READY",
	EFI_DEVICE_ERROR:         "EFI_DEVICE_ERROR",
	EFI_WRITE_PROTECTED:      "EFI_WRITE_PROTECTED",
	EFI_OUT_OF_RESOURCES:     "EFI_OUT_OF_RESOURCES",
	EFI_VOLUME_CORRUPTED:     "EFI_VOLUME_CORRUPTED",
	EFI_VOLUME_FULL:          "EFI_VOLUME_FULL",
	EFI_NO_MEDIA:             "EFI_NO_MEDIA",
	EFI_MEDIA_CHANGED:        "EFI_MEDIA_CHANGED",
	EFI_NOT_FOUND:            "EFI_NOT_FOUND",
	EFI_ACCESS_DENIED:        "EFI_ACCESS_DENIED",
	EFI_NO_RESPONSE:          "EFI_NO_RESPONSE",
	EFI_NO_MAPPING:           "EFI_NO_MAPPING",
	EFI_TIMEOUT:              "EFI_TIMEOUT",
	EFI_NOT_STARTED:          "EFI_NOT_STARTED",
	EFI_ALREADY_STARTED:      "EFI_ALREADY_STARTED",
	EFI_ABORTED:              "EFI_ABORTED",
	EFI_ICMP_ERROR:           "EFI_ICMP_ERROR",
	EFI_TFTP_ERROR:           "EFI_TFTP_ERROR",
	EFI_PROTOCOL_ERROR:       "EFI_PROTOCOL_ERROR",
	EFI_INCOMPATIBLE_VERSION: "EFI_INCOMPATIBLE_VERSION",
	EFI_SECURITY_VIOLATION:   "EFI_SECURITY_VIOLATION",
	EFI_CRC_ERROR:            "EFI_CRC_ERROR",
	EFI_END_OF_MEDIA:         "EFI_END_OF_MEDIA",
	EFI_END_OF_FILE:          "EFI_END_OF_FILE",
	EFI_INVALID_LANGUAGE:     "EFI_INVALID_LANGUAGE",
	EFI_COMPROMISED_DATA:     "EFI_COMPROMISED_DATA",
}

// Status represents a non-successful EFI_STATUS value returned by a firmware
// service.
type Status uint64

// Error implements the error interface.
func (s Status) Error() string {
	code := uint64(s) &^ EFI_ERROR

	if s&EFI_ERROR == 0 {
		return fmt.Sprintf("EFI_STATUS warning %#x (%d)", uint64(s), code)
	}

	if name, ok := statusNames[code]; ok {
		return fmt.Sprintf("EFI_STATUS error %s (%d)", name, code)
	}

	return fmt.Sprintf("EFI_STATUS error %#x (%d)", uint64(s), code)
}

// Code returns the status code without the error bit.
func (s Status) Code() uint64 {
	return uint64(s) &^ EFI_ERROR
}

// Errors commonly tested by callers.
var (
	ErrEfiInvalidParameter = Status(EFI_ERROR | EFI_INVALID_PARAMETER)
	ErrEfiUnsupported      = Status(EFI_ERROR | EFI_UNSUPPORTED)
	ErrEfiBufferTooSmall   = Status(EFI_ERROR | EFI_BUFFER_TOO_SMALL)
	ErrEfiNotReady         = Status(EFI_ERROR | EFI_NOT_READY)
	ErrEfiOutOfResources   = Status(EFI_ERROR | EFI_OUT_OF_RESOURCES)
	ErrEfiNotFound         = Status(EFI_ERROR | EFI_NOT_FOUND)
)

// parseStatus converts an EFI_STATUS to an error, warnings are reported as
// errors as the loader has no use for partially successful calls.
func parseStatus(status uint64) (err error) {
	if status == EFI_SUCCESS {
		return
	}

	return Status(status)
}
