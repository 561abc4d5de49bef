// Package survey indexes the files of one acoustic survey.
//
// Every file in a survey (raw capture, converted observation, calibrated
// derivative, failure log) is named after the observation it belongs to.
// ParseName recovers that timestamp key once so the rest of the pipeline
// never splits file names itself; Layout resolves the fixed directory tree
// beneath a survey root.
package survey
