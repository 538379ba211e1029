package checkout

import (
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const MaxSlipSize = 5 << 20

var allowedSlipTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Slip is an uploaded image offered as proof of a transfer or PromptPay
// payment. Accepting it only means it is present and well-formed.
type Slip struct {
	Filename string
	Data     []byte
}

// Validate sniffs the content type from the bytes rather than trusting the
// uploader, and enforces the size limit.
func (s *Slip) Validate() (string, error) {
	if s == nil || len(s.Data) == 0 {
		return "", invalid("slip", "payment slip is required")
	}
	if len(s.Data) > MaxSlipSize {
		return "", invalid("slip", fmt.Sprintf("payment slip must be at most %d MiB", MaxSlipSize>>20))
	}

	mime := mimetype.Detect(s.Data)
	for _, allowed := range allowedSlipTypes {
		if mime.Is(allowed) {
			return allowed, nil
		}
	}
	return "", invalid("slip", fmt.Sprintf("unsupported slip type %s", mime.String()))
}

// DataURL renders the slip as an inline image payload.
func (s *Slip) DataURL(contentType string) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
