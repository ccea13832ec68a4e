// Package render draws the live point set into an RGB565 framebuffer.
//
// Points are projected through a perspective camera and splatted as small
// depth-tested squares colored by their visual state. A text HUD is drawn on
// top with tinyfont.
package render
