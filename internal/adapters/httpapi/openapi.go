package httpapi

func openapiSpec() map[string]any {
	bearer := []map[string]any{{"bearerAuth": []string{}}}
	projectParam := queryParam("project_id", "string")
	orphanParam := queryParam("include_orphaned", "boolean")
	listParams := []map[string]any{projectParam, orphanParam, queryParam("limit", "integer"), queryParam("offset", "integer")}
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "feedbackapi",
			"version": "1.0.0",
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
				"apiKey":     map[string]any{"type": "apiKey", "in": "header", "name": apiKeyHeader},
			},
		},
		"paths": map[string]any{
			"/v1/feedback": map[string]any{
				"post": map[string]any{
					"summary":  "Submit feedback",
					"security": []map[string]any{{"apiKey": []string{}}, {}},
				},
				"options": map[string]any{"summary": "CORS preflight"},
				"get": map[string]any{
					"summary":    "List feedback",
					"security":   bearer,
					"parameters": listParams,
				},
			},
			"/v1/auth/register": map[string]any{
				"post": map[string]any{"summary": "Register an owner account"},
			},
			"/v1/auth/login": map[string]any{
				"post": map[string]any{"summary": "Issue a session token"},
			},
			"/v1/me": map[string]any{
				"get": map[string]any{"summary": "Current principal", "security": bearer},
			},
			"/v1/projects": map[string]any{
				"get":  map[string]any{"summary": "List projects", "security": bearer},
				"post": map[string]any{"summary": "Create project", "security": bearer},
			},
			"/v1/projects/{id}": map[string]any{
				"get":    map[string]any{"summary": "Get project", "security": bearer},
				"patch":  map[string]any{"summary": "Update project", "security": bearer},
				"delete": map[string]any{"summary": "Delete project", "security": bearer},
			},
			"/v1/insights": map[string]any{
				"get": map[string]any{
					"summary":    "Feedback insights",
					"security":   bearer,
					"parameters": []map[string]any{projectParam, orphanParam},
				},
			},
		},
	}
}

func queryParam(name, typ string) map[string]any {
	return map[string]any{"name": name, "in": "query", "schema": map[string]any{"type": typ}}
}
