// Package geom holds the small amount of 3D math the demo needs.
//
// Positions are float32 like the host engine's transforms. Distances and
// angles are computed in float32 so results match what the renderer sees.
// Matrices are column-major (m[col*4+row]) and follow the OpenGL layout.
package geom
