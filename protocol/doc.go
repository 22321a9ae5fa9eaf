// Package protocol defines the wire types exchanged with clients.
//
// Both directions use externally tagged JSON enums: unit values are bare
// strings (`"ListRooms"`) and payload values are single-key objects
// (`{"Join": "lobby"}`). Byte sequences travel as arrays of numbers, never
// base64. The format is fixed by the deployed web client, so the custom
// marshalers here are the source of truth for it.
package protocol
