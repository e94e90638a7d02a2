// Package scenery provides event-driven scenario execution machinery.
//
// The core code is in package 'core', and the service and tools are in 'cmd'.
//
// See https://github.com/Comcast/scenery/blob/master/README.md for more.
package scenery
