// Package scene holds the result of evaluating a sketch: the point indexes,
// named selections and solids it declared, in declaration order. Each
// evaluation produces a new Scene.
package scene
