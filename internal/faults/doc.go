// Package faults defines the error taxonomy shared by the catalog packages.
//
// Each failure class is a sentinel marker. Packages wrap their causes with
// Wrap so callers can branch with errors.Is while the message still carries
// the component and operation that failed. Kind and IsFatal translate an
// error into the classification the presentation layer needs: every class
// except persistence failures is something the user can fix and retry.
package faults
