// Package drag implements the pointer-drag state machine shared by the
// terminal window and the modal window.
//
// A Draggable captures the pointer offset on press, follows the pointer on
// move through a bounds function and freezes on release. Move and release
// events reach it through a Listeners port, the server-side stand-in for
// document-level listeners: they are attached only while a drag is active
// and detached on release or teardown.
package drag
