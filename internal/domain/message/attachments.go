package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errAttachmentNotObject = errors.New("attachment must be a JSON object")

// Attachment is an application-defined descriptor, usually
// {type, url, name, size}, stored inline with its message. Its keys and
// values are kept verbatim; the only requirement is that it is an object.
type Attachment json.RawMessage

// NewAttachment encodes fields as an attachment object.
func NewAttachment(fields map[string]interface{}) (Attachment, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal attachment: %w", err)
	}
	return Attachment(b), nil
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("{}"), nil
	}
	if !isObject(a) {
		return nil, errAttachmentNotObject
	}
	return []byte(a), nil
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return errAttachmentNotObject
	}
	*a = append((*a)[:0], data...)
	return nil
}

// IsObject reports whether a holds a JSON object.
func (a Attachment) IsObject() bool {
	return isObject(a)
}

func (a Attachment) String() string {
	return string(a)
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

func MarshalAttachments(items []Attachment) (string, error) {
	if items == nil {
		items = []Attachment{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal attachments: %w", err)
	}
	return string(b), nil
}

func UnmarshalAttachments(raw []byte) ([]Attachment, error) {
	items := []Attachment{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal attachments: %w", err)
	}
	return items, nil
}
