package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduLane LMS API",
        "description": "Learning management API with timezone-aware class schedules",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and account settings"},
        {"name": "Courses", "description": "Course catalog management"},
        {"name": "Enrollments", "description": "Student enrollment lifecycle"},
        {"name": "Timetables", "description": "Recurring weekly class slots and viewer-localized schedules"},
        {"name": "Sessions", "description": "One-off live sessions"},
        {"name": "Attendance", "description": "Session attendance records"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {"204": {"description": "Revoked"}}
            }
        },
        "/me/timezone": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Set preferred viewer timezone",
                "responses": {"204": {"description": "Stored"}}
            }
        },
        "/me/next-session": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Next upcoming class across the caller's enrolled courses",
                "parameters": [
                    {"name": "tz", "in": "query", "type": "string", "description": "Viewer IANA timezone override"}
                ],
                "responses": {
                    "200": {"description": "Resolved next session", "schema": {"$ref": "#/definitions/NextSession"}},
                    "404": {"description": "No upcoming session"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "type": "string"},
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "published", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "Courses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Course"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Archive course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Archived"}}
            }
        },
        "/courses/{id}/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetables for a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Timetables"}}
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Create timetable",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Malformed time"}}
            }
        },
        "/courses/{id}/timetables/localized": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Course timetables rendered in the viewer's timezone",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "tz", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Localized timetables"}}
            }
        },
        "/courses/{id}/next-session": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Next upcoming class for a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "tz", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Resolved next session", "schema": {"$ref": "#/definitions/NextSession"}},
                    "404": {"description": "No upcoming session"}
                }
            }
        },
        "/courses/{id}/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Schedule a live session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/timetables/{id}": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Update timetable",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete timetable",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/timetables/{id}/suggested-dates": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Next five concrete dates matching the timetable's weekly days",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Suggested dates"}}
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "responses": {"200": {"description": "Enrollments"}}
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student",
                "responses": {"201": {"description": "Enrolled"}, "409": {"description": "Already enrolled"}}
            }
        },
        "/enrollments/{id}/status": {
            "patch": {
                "tags": ["Enrollments"],
                "summary": "Update enrollment status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List live sessions",
                "responses": {"200": {"description": "Sessions"}}
            }
        },
        "/sessions/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance for a session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Attendance sheet"}}
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Recorded"}}
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "responses": {"202": {"description": "Queued"}}
            }
        },
        "/reports/{id}/status": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Status"}}
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report via signed token",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "401": {"description": "Invalid token"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "NextSession": {
            "type": "object",
            "properties": {
                "timetableId": {"type": "string"},
                "courseId": {"type": "string"},
                "day": {"type": "integer", "description": "Monday = 0 through Sunday = 6"},
                "dayName": {"type": "string"},
                "daysAway": {"type": "integer"},
                "localStartTime": {"type": "string"},
                "localEndTime": {"type": "string"},
                "isDifferentDay": {"type": "boolean"},
                "viewerTimezone": {"type": "string"}
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
