package extract

import (
	"fmt"

	"github.com/tts885/musubisuite/internal/domain"
)

// typeHints steers the model toward the fields each document category
// usually carries. Keyed by document type; "other" gets no hint.
var typeHints = map[domain.DocumentType]string{
	domain.DocumentInvoice:  "Typical fields: invoice number, issue date, due date, billing party, amounts, tax, line item totals.",
	domain.DocumentReceipt:  "Typical fields: store name, purchase date, items, subtotal, tax, total, payment method.",
	domain.DocumentContract: "Typical fields: contract title, parties, effective date, term, signatures, governing clauses.",
	domain.DocumentForm:     "Typical fields: form title, applicant name, date, checkboxes, entry values.",
}

// buildPrompt asks for strict JSON so the response parser has a fighting
// chance. Bounding boxes are requested but optional; models frequently omit
// them.
func buildPrompt(docType domain.DocumentType) string {
	prompt := `Analyze this document image and extract every labeled field you can identify.

Respond with JSON only, in exactly this shape:
{
  "fields": [
    {
      "label": "<field name as printed on the document>",
      "value": "<extracted value>",
      "confidence": <0.0-1.0>,
      "boundingBox": {"x": <px>, "y": <px>, "width": <px>, "height": <px>}
    }
  ]
}

Rules:
- The document type is "` + string(docType) + `".
- Include a confidence score between 0.0 and 1.0 for each field.
- Omit boundingBox if you cannot locate the field on the image.
- Do not invent fields that are not present in the document.
- Respond with the JSON object only, no explanation.`

	if hint, ok := typeHints[docType]; ok {
		prompt = fmt.Sprintf("%s\n- %s", prompt, hint)
	}
	return prompt
}
