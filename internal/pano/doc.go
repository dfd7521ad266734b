// Package pano is the navigable panorama graph.
//
// A SceneGraph holds panorama Nodes linked by directional Hotspots. Exactly
// one node is active once the graph has been activated. A
// TransitionController moves between nodes with a cross-fade: the incoming
// sphere fades in and its markers grow while the outgoing node fades out and
// is torn down. A PointerDispatcher turns a click into a hotspot hit on the
// active node and asks the controller to navigate.
//
// Rendering and asset decoding are delegated to an Engine and an
// AssetLoader. Everything in this package runs on the render thread; nothing
// here blocks waiting for an animation, completion arrives as a callback from
// Engine.Animate.
package pano
