package report

// Schema is the JSON Schema (Draft 2020-12) for the check JSON
// output. It documents the structure written by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/testnames/check-report.schema.json",
  "title": "testnames Check Report",
  "description": "Output schema for testnames check --format=json",
  "type": "object",
  "required": ["version", "run_id", "metadata", "summary", "classes"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "run_id": {
      "type": "string",
      "format": "uuid",
      "description": "Unique identifier of the run"
    },
    "metadata": { "$ref": "#/$defs/Metadata" },
    "summary": { "$ref": "#/$defs/Summary" },
    "classes": {
      "type": "array",
      "items": { "$ref": "#/$defs/ClassReport" }
    }
  },
  "$defs": {
    "Metadata": {
      "type": "object",
      "required": ["tool_version", "go_version", "duration_ms", "rules"],
      "properties": {
        "tool_version": { "type": "string" },
        "go_version": { "type": "string" },
        "duration_ms": {
          "type": "integer",
          "description": "Run duration in milliseconds"
        },
        "rules": {
          "type": "array",
          "items": { "type": "string" },
          "description": "Evaluated rule identifiers"
        },
        "warnings": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Run warnings, if any"
        }
      }
    },
    "Summary": {
      "type": "object",
      "required": ["classes", "cases", "complaints", "findings"],
      "properties": {
        "classes": { "type": "integer", "minimum": 0 },
        "cases": { "type": "integer", "minimum": 0 },
        "complaints": {
          "type": "integer",
          "minimum": 0,
          "description": "Number of top-level complaints"
        },
        "findings": {
          "type": "integer",
          "minimum": 0,
          "description": "Number of complaints including compound children"
        }
      }
    },
    "ClassReport": {
      "type": "object",
      "required": ["name", "path", "language", "cases", "complaints"],
      "properties": {
        "name": { "type": "string" },
        "path": { "type": "string" },
        "language": { "type": "string", "enum": ["go", "java"] },
        "cases": { "type": "integer", "minimum": 0 },
        "complaints": {
          "type": "array",
          "items": { "$ref": "#/$defs/Complaint" }
        }
      }
    },
    "Complaint": {
      "type": "object",
      "required": ["id", "rule", "subject", "location", "message"],
      "properties": {
        "id": {
          "type": "string",
          "pattern": "^tn-[0-9a-f]{8}$",
          "description": "Stable identifier (tn-XXXXXXXX)"
        },
        "rule": {
          "type": "string",
          "description": "Identifier of the reporting rule"
        },
        "subject": {
          "type": "string",
          "description": "Class or Class.case"
        },
        "location": {
          "type": "string",
          "description": "Source position (path or path:line)"
        },
        "message": {
          "type": "string",
          "description": "Human-readable explanation"
        },
        "children": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/$defs/Complaint" },
          "description": "Complaints wrapped by a compound complaint"
        }
      }
    }
  }
}`
