package swagger

import "github.com/swaggo/swag"

const envelopeRef = `{"$ref": "#/definitions/ResponseEnvelope"}`

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "RA Lab Allocator API",
        "description": "Assigns research assistants to laboratory sessions and manages saved drafts and exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Allocations", "description": "One-shot allocation runs"},
        {"name": "Drafts", "description": "Saved allocation drafts"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF exports"}
    ],
    "paths": {
        "/allocations": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Allocate lab sessions from a JSON payload",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Allocation result", "schema": ` + envelopeRef + `},
                    "400": {"description": "Invalid payload", "schema": ` + envelopeRef + `},
                    "413": {"description": "Roster or catalogue too large", "schema": ` + envelopeRef + `}
                }
            }
        },
        "/allocations/upload": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Allocate lab sessions from uploaded CSV files",
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "courses", "in": "formData", "type": "file", "required": true},
                    {"name": "ras", "in": "formData", "type": "file", "required": true},
                    {"name": "seed", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Allocation result", "schema": ` + envelopeRef + `},
                    "400": {"description": "Missing files", "schema": ` + envelopeRef + `},
                    "413": {"description": "Upload too large", "schema": ` + envelopeRef + `}
                }
            }
        },
        "/slot-map": {
            "get": {
                "tags": ["Allocations"],
                "summary": "Lab to theory slot mapping in effect",
                "responses": {"200": {"description": "Slot map", "schema": ` + envelopeRef + `}}
            }
        },
        "/drafts": {
            "get": {
                "tags": ["Drafts"],
                "summary": "List drafts",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "Draft summaries", "schema": ` + envelopeRef + `}}
            },
            "post": {
                "tags": ["Drafts"],
                "summary": "Save an allocation as a draft",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDraftRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": ` + envelopeRef + `},
                    "409": {"description": "Name already used", "schema": ` + envelopeRef + `}
                }
            }
        },
        "/drafts/{id}": {
            "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
            "get": {
                "tags": ["Drafts"],
                "summary": "Get draft detail",
                "responses": {
                    "200": {"description": "Draft", "schema": ` + envelopeRef + `},
                    "404": {"description": "Not found", "schema": ` + envelopeRef + `}
                }
            },
            "put": {
                "tags": ["Drafts"],
                "summary": "Update draft",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "Draft", "schema": ` + envelopeRef + `},
                    "404": {"description": "Not found", "schema": ` + envelopeRef + `},
                    "409": {"description": "Name already used", "schema": ` + envelopeRef + `}
                }
            },
            "delete": {
                "tags": ["Drafts"],
                "summary": "Delete draft",
                "security": [{"Bearer": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": ` + envelopeRef + `}
                }
            }
        },
        "/drafts/{id}/allocate": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Re-run allocation into an existing draft",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateRequest"}}
                ],
                "responses": {"200": {"description": "Updated draft", "schema": ` + envelopeRef + `}}
            }
        },
        "/drafts/{id}/stats": {
            "get": {
                "tags": ["Drafts"],
                "summary": "Per-assistant statistics for a draft",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Statistics", "schema": ` + envelopeRef + `}}
            }
        },
        "/drafts/{id}/exports": {
            "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
            "get": {
                "tags": ["Exports"],
                "summary": "List exports of a draft",
                "responses": {"200": {"description": "Export jobs", "schema": ` + envelopeRef + `}}
            },
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a draft export",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {"202": {"description": "Queued", "schema": ` + envelopeRef + `}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Status", "schema": ` + envelopeRef + `}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": ` + envelopeRef + `},
                    "404": {"description": "File expired", "schema": ` + envelopeRef + `}
                }
            }
        }
    },
    "definitions": {
        "Course": {
            "type": "object",
            "required": ["courseCode"],
            "properties": {
                "courseCode": {"type": "string"},
                "courseTitle": {"type": "string"},
                "courseOwner": {"type": "string"},
                "classId": {"type": "string"},
                "roomNumber": {"type": "string"},
                "slot": {"type": "string", "example": "L1+L2"},
                "employeeName": {"type": "string"},
                "employeeSchool": {"type": "string"},
                "courseMode": {"type": "string"},
                "courseType": {"type": "string", "example": "LO"}
            }
        },
        "Assistant": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "empId": {"type": "string"},
                "phdRegNo": {"type": "string"},
                "numLabs": {"type": "integer"},
                "registeredSlots": {"type": "string", "example": "A1+L5"}
            }
        },
        "Allocation": {
            "type": "object",
            "properties": {
                "raName": {"type": "string"},
                "empId": {"type": "string"},
                "phdRegNo": {"type": "string"},
                "numLabsReq": {"type": "integer"},
                "registeredSlots": {"type": "string"},
                "courseCode": {"type": "string"},
                "courseTitle": {"type": "string"},
                "courseOwner": {"type": "string"},
                "classId": {"type": "string"},
                "roomNumber": {"type": "string"},
                "slot": {"type": "string"},
                "employeeName": {"type": "string"},
                "employeeSchool": {"type": "string"},
                "courseMode": {"type": "string"},
                "courseType": {"type": "string"},
                "comments": {"type": "string"}
            }
        },
        "AllocateRequest": {
            "type": "object",
            "required": ["courses", "assistants"],
            "properties": {
                "courses": {"type": "array", "items": {"$ref": "#/definitions/Course"}},
                "assistants": {"type": "array", "items": {"$ref": "#/definitions/Assistant"}},
                "slotMap": {"type": "object", "additionalProperties": {"type": "string"}},
                "seed": {"type": "integer"}
            }
        },
        "CreateDraftRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "allocations": {"type": "array", "items": {"$ref": "#/definitions/Allocation"}},
                "unallocatedLabs": {"type": "array", "items": {"$ref": "#/definitions/Allocation"}},
                "slotMap": {"type": "object", "additionalProperties": {"type": "string"}},
                "seed": {"type": "integer"}
            }
        },
        "UpdateDraftRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "allocations": {"type": "array", "items": {"$ref": "#/definitions/Allocation"}},
                "unallocatedLabs": {"type": "array", "items": {"$ref": "#/definitions/Allocation"}},
                "slotMap": {"type": "object", "additionalProperties": {"type": "string"}},
                "seed": {"type": "integer"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "dataset": {"type": "string", "enum": ["allocations", "unallocated", "stats"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
