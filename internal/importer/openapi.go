package importer

import "github.com/JaimeStill/promptvault/pkg/openapi"

var importOp = &openapi.Operation{
	Summary:     "Extract text from an uploaded document",
	Description: "Accepts .txt, .md, .docx, and .pdf in the multipart field \"file\".",
	RequestBody: &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"multipart/form-data": {
				Schema: &openapi.Schema{
					Type:     "object",
					Required: []string{"file"},
					Properties: map[string]*openapi.Schema{
						"file": {Type: "string", Format: "binary"},
					},
				},
			},
		},
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Extracted text", "ImportResult"),
		400: openapi.ResponseRef("BadRequest"),
		413: {Description: "Upload exceeds the size limit"},
		415: {Description: "Unsupported file type"},
		422: {Description: "File could not be parsed"},
	},
}

func schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ImportResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"content": {Type: "string"},
				"type":    {Type: "string", Enum: []any{TypeText, TypeDOCX, TypePDF}},
				"pages":   {Type: "integer"},
			},
		},
	}
}
