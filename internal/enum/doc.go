// Package enum holds the enumerated vocabularies spoken on the bus and by
// backend helpers, and the Bitfield set type used to advertise capabilities.
//
// Each family (roles, groups, filters, network states, ...) is a Family with a
// canonical table of names. Bitfields render to semicolon-separated text in
// table order and "none" stands for the empty set. Filter members that exclude
// rather than include are spelled with a leading "~".
package enum
