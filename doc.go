// Package swarm is a BitTorrent download orchestration engine: it decides
// which pieces to request next and from whom, moves verified block data to
// storage without blocking network progress, and keeps both under a global
// bandwidth budget.
//
// The wire protocol, transports, peer discovery and metadata parsing are
// external collaborators reached through narrow interfaces; see Peer and
// TorrentView.
package swarm
