// Package types defines the values, schemas and documents shared by the
// synthesis pipeline.
//
// A FileSpec pairs a target path template with a format and a Schema. Its
// Values are checked against the schema and combined with field defaults
// into EffectiveValues. Format plugins read target files into an
// ExistingFileState and write a MergedDocument back; the synthesis manager
// reports one Result per spec.
package types
