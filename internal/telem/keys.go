package telem

// ChannelKey uniquely identifies a data channel within a graph.
type ChannelKey uint32

// NodeKey uniquely identifies a node within a graph.
type NodeKey uint32
