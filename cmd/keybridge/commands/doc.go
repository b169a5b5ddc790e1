// Package commands defines the keybridge CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - export          Encrypt a room key list into an armored export
//   - import          Decrypt an armored key export
//   - qr show         Render a verification payload as a QR code
//   - qr scan         Decode a verification QR code from an image
//   - send-to-device  Send a raw to-device event (debugging)
//
// # Implementation
//
// The root command builds the transport client and exchange service before
// any subcommand runs when a homeserver is configured; the codec commands
// work entirely offline.
package commands
