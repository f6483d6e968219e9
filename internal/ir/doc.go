// Package ir provides the declaration model consumed by the generator.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Declaration kinds and field types are closed variants. Dispatch is an
//     exhaustive type switch, never reflection.
//   - Declarations reference each other by name only (DeclName).
//   - Slices preserve source order; the generator never sorts declarations
//     by name.
package ir
