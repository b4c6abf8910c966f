package core

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// File lifecycle states reported by the service.
const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

// FileDescriptor is the normalized record describing an uploaded file.
// It is produced once on a successful finalize and never mutated afterwards;
// re-reading the file from the service yields a fresh descriptor.
type FileDescriptor struct {
	Name           string `json:"name"`
	URI            string `json:"uri"`
	MIMEType       string `json:"mime_type"`
	DisplayName    string `json:"display_name,omitempty"`
	SizeBytes      int64  `json:"size_bytes"`
	State          string `json:"state,omitempty"`
	SHA256Hash     string `json:"sha256_hash,omitempty"`
	CreateTime     string `json:"create_time,omitempty"`
	UpdateTime     string `json:"update_time,omitempty"`
	ExpirationTime string `json:"expiration_time,omitempty"`
}

// NormalizeFile converts a bare file payload (the service's camelCase naming)
// into a FileDescriptor. Pure transformation, no I/O. A missing name, or a
// sizeBytes field that is absent or does not parse as a non-negative integer,
// fails normalization rather than defaulting.
func NormalizeFile(body []byte) (*FileDescriptor, error) {
	if !gjson.ValidBytes(body) {
		return nil, NewMalformedResponseError("file payload is not valid JSON", nil)
	}
	return normalizeFile(gjson.ParseBytes(body))
}

// NormalizeWrappedFile converts an upload finalize payload, which wraps the
// file object under a "file" key, into a FileDescriptor.
func NormalizeWrappedFile(body []byte) (*FileDescriptor, error) {
	if !gjson.ValidBytes(body) {
		return nil, NewMalformedResponseError("upload response is not valid JSON", nil)
	}
	wrapped := gjson.GetBytes(body, "file")
	if !wrapped.Exists() {
		return nil, NewMalformedResponseError(`upload response is missing the "file" key`, nil)
	}
	return normalizeFile(wrapped)
}

// NormalizeFileList converts a files.list payload into descriptors plus the
// next page token. An absent "files" key means an empty page, not an error.
func NormalizeFileList(body []byte) ([]*FileDescriptor, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", NewMalformedResponseError("file list payload is not valid JSON", nil)
	}
	parsed := gjson.ParseBytes(body)
	raw := parsed.Get("files").Array()
	files := make([]*FileDescriptor, 0, len(raw))
	for _, item := range raw {
		fd, err := normalizeFile(item)
		if err != nil {
			return nil, "", err
		}
		files = append(files, fd)
	}
	return files, parsed.Get("nextPageToken").String(), nil
}

func normalizeFile(obj gjson.Result) (*FileDescriptor, error) {
	name := obj.Get("name").String()
	if name == "" {
		return nil, NewMalformedResponseError(`file payload is missing "name"`, nil)
	}

	sizeField := obj.Get("sizeBytes")
	if !sizeField.Exists() {
		return nil, NewMalformedResponseError(`file payload is missing "sizeBytes"`, nil)
	}
	size, err := strconv.ParseInt(sizeField.String(), 10, 64)
	if err != nil {
		return nil, NewMalformedResponseError(
			fmt.Sprintf("sizeBytes %q is not an integer", sizeField.String()), err)
	}
	if size < 0 {
		return nil, NewMalformedResponseError(
			fmt.Sprintf("sizeBytes %d is negative", size), nil)
	}

	return &FileDescriptor{
		Name:           name,
		URI:            obj.Get("uri").String(),
		MIMEType:       obj.Get("mimeType").String(),
		DisplayName:    obj.Get("displayName").String(),
		SizeBytes:      size,
		State:          obj.Get("state").String(),
		SHA256Hash:     obj.Get("sha256Hash").String(),
		CreateTime:     obj.Get("createTime").String(),
		UpdateTime:     obj.Get("updateTime").String(),
		ExpirationTime: obj.Get("expirationTime").String(),
	}, nil
}
