package reports

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFValidator checks uploaded bytes before they are stored.
type PDFValidator interface {
	Validate(data []byte) error
}

// PDFCPUValidator runs pdfcpu's relaxed structural validation.
type PDFCPUValidator struct{}

func (PDFCPUValidator) Validate(data []byte) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), cfg); err != nil {
		return fmt.Errorf("%w: not a valid PDF: %v", ErrDecodeFailure, err)
	}
	return nil
}
