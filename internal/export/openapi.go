package export

import "github.com/JaimeStill/promptvault/pkg/openapi"

type exportSpec struct {
	Export  *openapi.Operation
	Formats *openapi.Operation
}

var spec = exportSpec{
	Export: &openapi.Operation{
		Summary:     "Export the selected prompts",
		Description: "Renders the selection in library order and clears it on success.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("format", "string", "docx or pdf; defaults to the configured format", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Document attachment",
				Content: map[string]*openapi.MediaType{
					docxContentType:   {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
					"application/pdf": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Formats: &openapi.Operation{
		Summary: "Supported export formats",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Format names",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
				},
			},
		},
	},
}
