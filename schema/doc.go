// Package schema declares the shape of structured model output and checks
// payloads against it.
//
// Schemas are built programmatically with a fluent API. Object fields keep
// their declaration order both in the serialized JSON Schema sent upstream
// and in validation. Inconsistent descriptors fail at build time with a
// *DefinitionError; payload violations are reported as ValidationErrors.
//
// # Basic Usage
//
// Create schemas using the type constructors and chain constraint methods:
//
//	params := schema.Object().
//		Field("location", schema.String().Desc("City name").Required()).
//		Field("unit", schema.String().Enum("celsius", "fahrenheit")).
//		Field("days", schema.Int().Min(1).Max(14).Default(7)).
//		MustBuild()
//
// # With Tool Definitions
//
//	t := ai.Tool{
//		Name:        "get_forecast",
//		Description: "Get weather forecast",
//		Parameters: schema.Object().
//			Field("location", schema.String().Required()).
//			Field("days", schema.Int().Min(1).Max(14)).
//			MustBuild(),
//	}
//
// # Named Schemas
//
// Define attaches a name to an object schema. The result serializes itself
// for the provider and validates what comes back:
//
//	book := schema.MustDefine("book_info", "A book", schema.Object().
//		StrictMode().
//		Field("title", schema.String().Required()).
//		Field("year", schema.Int().Min(1000).Max(2100).Required()))
//
//	info, err := schema.Decode[BookInfo](book, payload)
//
// A Registry holds named schemas for lookup by name.
//
// # Nested Objects
//
//	params := schema.Object().
//		Field("user", schema.Object().
//			Field("name", schema.String().Required()).
//			Field("age", schema.Int().Min(0)).
//			Required()).
//		Field("tags", schema.Array(schema.String()).MaxItems(10)).
//		MustBuild()
//
// # String Constraints
//
//	schema.String().
//		MinLength(1).
//		MaxLength(100).
//		Pattern(`^[a-z]+$`).
//		Build()
//
// # Numeric Constraints
//
//	schema.Int().Min(1).Max(100).Build()
//	schema.Number().ExclusiveMin(0).ExclusiveMax(1.0).Build()
//
// # Array Constraints
//
//	schema.Array(schema.String()).
//		MinItems(1).
//		MaxItems(10).
//		UniqueItems().
//		Build()
//
// # Definition Errors
//
// Use Build() instead of MustBuild() to handle errors:
//
//	params, err := schema.Object().
//		Field("count", schema.Int().Min(10).Max(5)). // Error: min > max
//		Build()
//	if err != nil {
//		log.Fatal(err) // schema: minimum exceeds maximum
//	}
//
// # Closed Objects
//
// StrictMode() sets additionalProperties to false. Unknown fields then fail
// validation, and providers that support it are asked to follow the schema
// exactly. Optional values in a closed object are expressed with Nullable():
//
//	params := schema.Object().
//		StrictMode().
//		Field("name", schema.String().Required()).
//		Field("link", schema.String().Nullable().Required()).
//		MustBuild()
package schema
