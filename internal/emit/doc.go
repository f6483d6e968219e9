// Package emit drives generation for whole packages.
//
// Every container (interface or type collection) is rendered in its own
// session: each declaration is rendered with the template of its kind and
// stored first-wins, its dependencies are recorded, and the session is then
// reordered so that every declaration follows the declarations it uses. The
// ordered declarations are wrapped with typesheader.tpl and written as
// <container>.types.h. Interfaces additionally get the plain targets, which
// render the whole interface with one template each.
//
// Files are only written once their full text is known. Render, resource
// and ordering errors stop the run and carry the container they occurred in.
package emit
