// Package requests decides whether a new song request may enter the queue
// and orders the open queue for volunteers.
package requests
