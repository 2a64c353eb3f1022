// Package geom provides the axis-aligned bounds used by the spatial indices.
// Points are sdfx vectors; Bounds3 and Bounds2 add the containment,
// intersection and octant/quadrant split helpers the trees are built from.
package geom
