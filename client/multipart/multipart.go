// Package multipart serializes named file parts into a multipart/form-data
// request body.
//
// The wire layout of each part is
//
//	--<boundary>\r\n
//	Content-Disposition: form-data; name="<field>"; filename="<file>"\r\n
//	Content-Type: <mime>\r\n
//	\r\n
//	<bytes>\r\n
//
// and the body ends with the closing marker --<boundary>-- without a
// trailing line break.
package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/forkwallet/netclient/internal/validate"
)

// MIMEImageJPG is the type used for avatar and invoice image uploads.
const MIMEImageJPG = "image/jpg"

var (
	ErrNoParts         = errors.New("no parts to encode")
	ErrInvalidBoundary = errors.New("invalid boundary")
	ErrInvalidName     = errors.New("name contains quote or line break")
)

// FilePart is one file of a multipart body. An empty MIMEType is detected
// from Content.
type FilePart struct {
	FileName  string `json:"filename" validate:"required"`
	FieldName string `json:"name" validate:"required"`
	MIMEType  string `json:"mimeType"`
	Content   []byte `json:"-"`
}

// NewBoundary returns a boundary that is unique per call.
func NewBoundary() string {
	return "Boundary-" + strings.ToUpper(uuid.NewString())
}

// ContentType returns the Content-Type header value announcing boundary.
func ContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// Encode writes parts separated by boundary and terminated by the closing
// boundary marker.
func Encode(parts []FilePart, boundary string) ([]byte, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}
	if boundary == "" || strings.ContainsAny(boundary, "\r\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBoundary, boundary)
	}

	var buf bytes.Buffer
	for i, p := range parts {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("part[%d]: %w", i, err)
		}

		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n", p.FieldName, p.FileName)
		fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", p.mime())
		buf.Write(p.Content)
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--", boundary)

	return buf.Bytes(), nil
}

func (p FilePart) validate() error {
	if err := validate.Check(p); err != nil {
		return err
	}
	if strings.ContainsAny(p.FieldName+p.FileName, "\"\r\n") {
		return ErrInvalidName
	}
	if strings.ContainsAny(p.MIMEType, "\r\n") {
		return fmt.Errorf("mime type: %w", ErrInvalidName)
	}

	return nil
}

func (p FilePart) mime() string {
	if p.MIMEType != "" {
		return p.MIMEType
	}
	return mimetype.Detect(p.Content).String()
}
