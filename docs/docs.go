// Package docs holds the Swagger spec served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/enrollments": {
			"post": {
				"tags": [
					"enrollments"
				],
				"summary": "Enroll a student",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.EnrollRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Successfully enrolled",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Missing fields (VAL_001) or course full (ENR_001)",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Cannot enroll another student",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Student or course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Already enrolled (ENR_002)",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"500": {
						"description": "Storage unavailable",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"tags": [
					"enrollments"
				],
				"summary": "List enrollments",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Filter by student",
						"name": "student_id",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Filter by course",
						"name": "course_id",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Invalid filter",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"500": {
						"description": "Storage unavailable",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/enrollments/{id}": {
			"get": {
				"tags": [
					"enrollments"
				],
				"summary": "Get enrollment",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Enrollment ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"404": {
						"description": "Enrollment not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"enrollments"
				],
				"summary": "Update progress",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateProgressRequest"
						}
					},
					{
						"type": "integer",
						"description": "Enrollment ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Invalid progress",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Not your enrollment",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Enrollment not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"tags": [
					"enrollments"
				],
				"summary": "Unenroll",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Enrollment ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "Successfully unenrolled",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"403": {
						"description": "Not your enrollment",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Enrollment not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/students": {
			"get": {
				"tags": [
					"students"
				],
				"summary": "List students",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Search in full name or email",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number (1-based)",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"403": {
						"description": "Admin only",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"students"
				],
				"summary": "Create a student",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateStudentRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Student created successfully",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Invalid request data",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Email already exists",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/students/{id}": {
			"get": {
				"tags": [
					"students"
				],
				"summary": "Get student by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Student ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"404": {
						"description": "Student not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"students"
				],
				"summary": "Update student",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateStudentRequest"
						}
					},
					{
						"type": "integer",
						"description": "Student ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Invalid request data",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Student not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"tags": [
					"students"
				],
				"summary": "Delete student",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Student ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"404": {
						"description": "Student not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Student has enrollments",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "List courses",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Category",
						"name": "category",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Level",
						"name": "level",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Search in title or course code",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number (1-based)",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Create a course",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateCourseRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Course created successfully",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Invalid request data",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Course code already exists",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/courses/{id}": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "Get course by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"404": {
						"description": "Course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"courses"
				],
				"summary": "Update course",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateCourseRequest"
						}
					},
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Invalid request data",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"tags": [
					"courses"
				],
				"summary": "Delete course",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"404": {
						"description": "Course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Course has enrollments",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}/reconcile": {
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Reconcile enrolled count",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"403": {
						"description": "Admin only",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "More enrollments than capacity",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}/image": {
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Upload course image",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "file",
						"description": "Image (jpg, jpeg, png, webp; max 5MB)",
						"name": "image",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.APIResponse"
						}
					},
					"400": {
						"description": "Missing, oversized or unsupported file",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Admin only",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}/seats/ws": {
			"get": {
				"description": "Upgrades to a WebSocket that first sends the current seat snapshot, then one message per change.",
				"tags": [
					"courses"
				],
				"summary": "Watch seat availability",
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"101": {
						"description": "Switching Protocols"
					},
					"400": {
						"description": "Invalid course ID",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Course not found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"dto.APIResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": true
				},
				"message": {
					"type": "string",
					"example": "Operation completed successfully"
				},
				"data": {},
				"error": {
					"$ref": "#/definitions/dto.ErrorDetail"
				},
				"timestamp": {
					"type": "string",
					"example": "2025-04-23T12:01:05.123Z"
				}
			}
		},
		"dto.ErrorDetail": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"example": "ENR_001"
				},
				"message": {
					"type": "string",
					"example": "course is full"
				},
				"field": {
					"type": "string",
					"example": "course_id"
				},
				"severity": {
					"type": "string",
					"example": "ERROR"
				},
				"details": {}
			}
		},
		"dto.ErrorResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean",
					"example": false
				},
				"error": {
					"$ref": "#/definitions/dto.ErrorDetail"
				},
				"timestamp": {
					"type": "string",
					"example": "2025-04-23T12:01:05.123Z"
				}
			}
		},
		"dto.EnrollRequest": {
			"type": "object",
			"properties": {
				"student_id": {
					"type": "integer",
					"example": 10
				},
				"course_id": {
					"type": "integer",
					"example": 5
				}
			},
			"required": [
				"course_id"
			]
		},
		"dto.UpdateProgressRequest": {
			"type": "object",
			"properties": {
				"completion_status": {
					"type": "string",
					"enum": [
						"Not Started",
						"In Progress",
						"Completed"
					],
					"example": "In Progress"
				},
				"progress_percentage": {
					"type": "integer",
					"minimum": 0,
					"maximum": 100,
					"example": 40
				},
				"certificate_issued": {
					"type": "boolean"
				}
			},
			"required": [
				"completion_status",
				"progress_percentage"
			]
		},
		"dto.CreateStudentRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "ada@example.com"
				},
				"full_name": {
					"type": "string",
					"example": "Ada Lovelace"
				},
				"phone": {
					"type": "string"
				},
				"bio": {
					"type": "string"
				},
				"profile_image_url": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"full_name"
			]
		},
		"dto.UpdateStudentRequest": {
			"type": "object",
			"properties": {
				"full_name": {
					"type": "string",
					"example": "Ada King"
				},
				"phone": {
					"type": "string"
				},
				"bio": {
					"type": "string"
				},
				"profile_image_url": {
					"type": "string"
				}
			}
		},
		"dto.CreateCourseRequest": {
			"type": "object",
			"properties": {
				"course_code": {
					"type": "string",
					"example": "GO-101"
				},
				"title": {
					"type": "string",
					"example": "Practical Go"
				},
				"description": {
					"type": "string"
				},
				"instructor_name": {
					"type": "string"
				},
				"max_capacity": {
					"type": "integer",
					"example": 30
				},
				"duration_weeks": {
					"type": "integer",
					"example": 8
				},
				"price": {
					"type": "number",
					"example": 0
				},
				"image_url": {
					"type": "string"
				},
				"category": {
					"type": "string",
					"example": "Programming"
				},
				"level": {
					"type": "string",
					"example": "Beginner"
				}
			},
			"required": [
				"course_code",
				"title"
			]
		},
		"dto.UpdateCourseRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"instructor_name": {
					"type": "string"
				},
				"max_capacity": {
					"type": "integer"
				},
				"duration_weeks": {
					"type": "integer"
				},
				"price": {
					"type": "number"
				},
				"image_url": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"level": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and the JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EduTrack API",
	Description:      "Students, courses and capacity-checked enrollments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
