// Package schemafile loads schemas from YAML or JSON documents:
//
//	fields:
//	  name:
//	    description: Your name
//	    required: true
//	    pattern: ^[a-z]+$
//	  port:
//	    type: integer
//	    default: 8080
//
// Field order in the document is prompt order. Besides the rule keys
// (description, message, required, hidden, default, type, retry) a field may
// declare pattern (one expression or a list), enum, minLength and maxLength.
package schemafile
