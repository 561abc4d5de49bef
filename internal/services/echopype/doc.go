// Package echopype runs the external echosounder tools: the raw decoder,
// the Sv calibrator, and the group inspector that prints one JSON document
// per file group.
//
// Every call runs under the configured timeout; failures are tagged with
// services.ErrExternalTool or services.ErrTimeout so run reports classify
// them as conversion failures.
package echopype
