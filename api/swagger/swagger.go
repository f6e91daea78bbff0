package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Admin API",
        "description": "School administration backend: sessions, classes, students, attendance, tests and notices",
        "version": "1.0.0"
    },
    "basePath": "/api",
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
        {"name": "Auth", "description": "Login sessions"},
        {"name": "Users", "description": "Directory users"},
        {"name": "Sessions", "description": "Academic sessions"},
        {"name": "Classes", "description": "Classes and rosters"},
        {"name": "Teachers", "description": "Teachers and subject assignments"},
        {"name": "Students", "description": "Student profiles and enrollments"},
        {"name": "Subjects", "description": "Subjects and elective groups"},
        {"name": "Tests", "description": "Tests and marks"},
        {"name": "Attendance", "description": "Daily attendance"},
        {"name": "Notices", "description": "Class notice board"},
        {"name": "Activity", "description": "Recent admin activity"}
    ],
    "paths": {
        "/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a presented session or verify a federated identity assertion",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"token": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Signed session token"},
                    "401": {"description": "Account does not exist or assertion invalid"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the presented session; idempotent",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user with role scope attached",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Current user"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/create/session": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Create a non-overlapping academic session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Overlaps an existing session"}
                }
            }
        },
        "/get/latest-session": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Return the latest academic session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Latest session"},
                    "404": {"description": "No session exists"}
                }
            }
        },
        "/create/class": {
            "post": {
                "tags": ["Classes"],
                "summary": "Create a class with a unique grade/section and homeroom teacher",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate class or teacher already assigned"}
                }
            }
        },
        "/clone/class": {
            "post": {
                "tags": ["Classes"],
                "summary": "Clone a class with its roster and subject assignments into another session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/add/profiles": {
            "post": {
                "tags": ["Students"],
                "summary": "Register student profiles and link guardian contacts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/add/students": {
            "post": {
                "tags": ["Students"],
                "summary": "Batch-enroll students; all-or-nothing after validation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure with offending serial numbers"}
                }
            }
        },
        "/add/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark a class's attendance for today",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Already marked for today"}
                }
            }
        },
        "/add/marks": {
            "post": {
                "tags": ["Tests"],
                "summary": "Record or overwrite marks for a test",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/export/marks/{classId}/{testId}": {
            "get": {
                "tags": ["Tests"],
                "summary": "Export a class's marks sheet as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "type": "string", "required": true},
                    {"name": "testId", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File body"}
                }
            }
        },
        "/add/notice": {
            "post": {
                "tags": ["Notices"],
                "summary": "Fan a notice out to a set of classes",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/get/student-notices/{id}/{page}": {
            "get": {
                "tags": ["Notices"],
                "summary": "Page a student's class notice feed",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "page", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "Notices with page count"}
                }
            }
        },
        "/get/activity": {
            "get": {
                "tags": ["Activity"],
                "summary": "Return the recent-activity log, newest first",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Activity entries"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
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
