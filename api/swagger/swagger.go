package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Portal API",
        "description": "Admissions lifecycle and gated workflow engine for the postgraduate portal",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Authentication",
            "description": "Staff sign-in"
        },
        {
            "name": "Lifecycle",
            "description": "Applicant migration and graduation"
        },
        {
            "name": "Results",
            "description": "Result batch approval workflow"
        },
        {
            "name": "Payments",
            "description": "Lecturer payment schedule workflow"
        },
        {
            "name": "Assignments",
            "description": "Examiner and supervisor assignment"
        },
        {
            "name": "Admissions",
            "description": "Admission invitations and status notices"
        },
        {
            "name": "Dashboard",
            "description": "Workflow status counts"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Degraded"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "summary": "Authenticate user",
                "tags": [
                    "Authentication"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "summary": "Get current user",
                "tags": [
                    "Authentication"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/lifecycle/migrate": {
            "post": {
                "summary": "Migrate an approved applicant to a student",
                "tags": [
                    "Lifecycle"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LifecycleRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/lifecycle/graduate": {
            "post": {
                "summary": "Graduate the applicant's linked student",
                "tags": [
                    "Lifecycle"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LifecycleRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/lifecycle/applicants/{id}/student": {
            "get": {
                "summary": "Get the student linked to an applicant",
                "tags": [
                    "Lifecycle"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No student record",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/results/action": {
            "post": {
                "summary": "Approve, reject or release a result batch",
                "tags": [
                    "Results"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ResultActionRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/results/batches": {
            "get": {
                "summary": "List result batches",
                "tags": [
                    "Results"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "status",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "session",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "semester",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "courseId",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer"
                    },
                    {
                        "in": "query",
                        "name": "pageSize",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/payments/action": {
            "post": {
                "summary": "Generate, approve or pay lecturer payments",
                "tags": [
                    "Payments"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PaymentActionRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/payments": {
            "get": {
                "summary": "List lecturer payments",
                "tags": [
                    "Payments"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "status",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "session",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "semester",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "lecturerId",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer"
                    },
                    {
                        "in": "query",
                        "name": "pageSize",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/payments/schedule/export": {
            "get": {
                "summary": "Export the payment schedule",
                "tags": [
                    "Payments"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "format",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "status",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "session",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "semester",
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/assignments/examiner": {
            "post": {
                "summary": "Assign or clear an examiner",
                "tags": [
                    "Assignments"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignExaminerRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/assignments/supervisor": {
            "post": {
                "summary": "Assign or clear a supervisor",
                "tags": [
                    "Assignments"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignSupervisorRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/admissions/{id}/invite": {
            "post": {
                "summary": "Invite an applicant to the admission exercise",
                "tags": [
                    "Admissions"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/InviteRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/admissions/{id}/notify-status": {
            "post": {
                "summary": "Notify an applicant of their status",
                "tags": [
                    "Admissions"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition applied",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Target not found",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "409": {
                        "description": "Already transitioned",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    },
                    "422": {
                        "description": "Guard rejected",
                        "schema": {
                            "$ref": "#/definitions/TransitionOutcome"
                        }
                    }
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "summary": "Workflow status counts",
                "tags": [
                    "Dashboard"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "LifecycleRequest": {
            "type": "object",
            "required": [
                "applicantId"
            ],
            "properties": {
                "applicantId": {
                    "type": "string"
                }
            }
        },
        "ResultActionRequest": {
            "type": "object",
            "required": [
                "courseId",
                "session",
                "semester",
                "action"
            ],
            "properties": {
                "courseId": {
                    "type": "string"
                },
                "session": {
                    "type": "string"
                },
                "semester": {
                    "type": "string"
                },
                "action": {
                    "type": "string",
                    "enum": [
                        "approve",
                        "reject",
                        "release"
                    ]
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "PaymentActionRequest": {
            "type": "object",
            "required": [
                "action"
            ],
            "properties": {
                "action": {
                    "type": "string",
                    "enum": [
                        "GENERATE",
                        "APPROVE",
                        "PAY"
                    ]
                },
                "paymentIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "session": {
                    "type": "string"
                },
                "semester": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                }
            }
        },
        "AssignExaminerRequest": {
            "type": "object",
            "required": [
                "studentProgrammeId",
                "type"
            ],
            "properties": {
                "studentProgrammeId": {
                    "type": "string"
                },
                "examinerId": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "internal1",
                        "internal2",
                        "external"
                    ]
                }
            }
        },
        "AssignSupervisorRequest": {
            "type": "object",
            "required": [
                "studentProgrammeId"
            ],
            "properties": {
                "studentProgrammeId": {
                    "type": "string"
                },
                "supervisorId": {
                    "type": "string"
                }
            }
        },
        "InviteRequest": {
            "type": "object",
            "required": [
                "scheduledAt",
                "venue"
            ],
            "properties": {
                "scheduledAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "venue": {
                    "type": "string"
                },
                "note": {
                    "type": "string"
                }
            }
        },
        "TransitionOutcome": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "code": {
                    "type": "string",
                    "enum": [
                        "ALLOWED",
                        "GUARD_REJECTED",
                        "ALREADY_TRANSITIONED",
                        "NOT_FOUND",
                        "TRANSITION_FAILED"
                    ]
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "data": {
                    "type": "object"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
