package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduConnect Timetable API",
        "description": "Timetable events, conflict checks, semesters and classrooms",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Timetable", "description": "Timetable events and slot conflict checks"},
        {"name": "Semesters", "description": "Academic semesters"},
        {"name": "Classrooms", "description": "Bookable rooms"}
    ],
    "paths": {
        "/timetable/conflicts/check": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Check a slot for classroom or teacher conflicts",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Check result", "schema": {"$ref": "#/definitions/ConflictCheckResult"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/events": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List timetable events",
                "parameters": [
                    {"in": "query", "name": "semester_id", "type": "string"},
                    {"in": "query", "name": "class_id", "type": "string"},
                    {"in": "query", "name": "teacher_id", "type": "string"},
                    {"in": "query", "name": "classroom_id", "type": "string"},
                    {"in": "query", "name": "day_of_week", "type": "integer"},
                    {"in": "query", "name": "subject_id", "type": "string"},
                    {"in": "query", "name": "week", "type": "integer"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "sort", "type": "string"},
                    {"in": "query", "name": "order", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Events", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetable"],
                "summary": "Create a timetable event",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TimetableEvent"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Classroom or teacher conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/events/bulk": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Create many timetable events",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "One or more items conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/events/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get a timetable event",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Event", "schema": {"$ref": "#/definitions/TimetableEvent"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Timetable"],
                "summary": "Update a timetable event",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/TimetableEvent"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Classroom or teacher conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetable"],
                "summary": "Delete a timetable event",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/classes/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly timetable of a class",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "semester_id", "required": true, "type": "string"},
                    {"in": "query", "name": "week", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "Week view"}}
            }
        },
        "/timetable/classes/{id}/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export a class week as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "semester_id", "required": true, "type": "string"},
                    {"in": "query", "name": "week", "required": true, "type": "integer"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/timetable/teachers/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly timetable of a teacher",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "semester_id", "required": true, "type": "string"},
                    {"in": "query", "name": "week", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "Week view"}}
            }
        },
        "/semesters": {
            "get": {"tags": ["Semesters"], "summary": "List semesters", "responses": {"200": {"description": "Semesters"}}},
            "post": {"tags": ["Semesters"], "summary": "Create a semester", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate"}}}
        },
        "/semesters/active": {
            "get": {"tags": ["Semesters"], "summary": "Active semester", "responses": {"200": {"description": "Semester"}, "404": {"description": "None active"}}}
        },
        "/semesters/{id}": {
            "get": {"tags": ["Semesters"], "summary": "Get a semester", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Semester"}}},
            "put": {"tags": ["Semesters"], "summary": "Update a semester", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Semester"}}},
            "delete": {"tags": ["Semesters"], "summary": "Delete a semester", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Semester has events"}}}
        },
        "/semesters/{id}/activate": {
            "post": {"tags": ["Semesters"], "summary": "Mark a semester active", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Semester"}}}
        },
        "/classrooms": {
            "get": {"tags": ["Classrooms"], "summary": "List classrooms", "responses": {"200": {"description": "Classrooms"}}},
            "post": {"tags": ["Classrooms"], "summary": "Create a classroom", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate code"}}}
        },
        "/classrooms/{id}": {
            "get": {"tags": ["Classrooms"], "summary": "Get a classroom", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Classroom"}}},
            "put": {"tags": ["Classrooms"], "summary": "Update a classroom", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "Classroom"}}},
            "delete": {"tags": ["Classrooms"], "summary": "Delete a classroom", "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Classroom is booked"}}}
        }
    },
    "definitions": {
        "ConflictCheckRequest": {
            "type": "object",
            "required": ["classroom_id", "teacher_id", "day_of_week", "start_time", "week_number", "semester_id"],
            "properties": {
                "classroom_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "start_time": {"type": "string", "example": "08:00"},
                "week_number": {"type": "integer", "minimum": 1, "maximum": 52},
                "semester_id": {"type": "string"},
                "exclude_event_id": {"type": "string"}
            }
        },
        "ConflictCheckResult": {
            "type": "object",
            "properties": {
                "has_conflict": {"type": "boolean"},
                "conflict_type": {"type": "string", "enum": ["classroom already booked", "teacher already assigned"]},
                "dimension": {"type": "string", "enum": ["CLASSROOM", "TEACHER"]},
                "conflict": {"$ref": "#/definitions/TimetableEvent"}
            }
        },
        "CreateTimetableEventRequest": {
            "type": "object",
            "required": ["class_id", "subject_id", "teacher_id", "classroom_id", "semester_id", "day_of_week", "start_time", "end_time", "week_number"],
            "properties": {
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "classroom_id": {"type": "string"},
                "semester_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "week_number": {"type": "integer"},
                "notes": {"type": "string"}
            }
        },
        "TimetableEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "classroom_id": {"type": "string"},
                "semester_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "week_number": {"type": "integer"},
                "notes": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
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
