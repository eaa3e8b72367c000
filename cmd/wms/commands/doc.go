// Package commands defines the wms CLI, the driver-facing client of the bin
// monitoring backend.
//
// Commands
//
//   - signup          Register a driver account
//   - login           Log in and store the session
//   - logout          Forget the stored session
//   - whoami          Show the stored session
//   - bins list       List bins with their fill level
//   - bins show       Show one bin with its sensor data
//   - profile show    Show the driver profile from the server
//   - profile update  Edit the driver profile
//   - navigate        Bearing and distance between two points or to a bin
//   - track           Stream positions read from stdin to the backend
//
// # Implementation
//
// The root command loads configuration, builds the logger, the session store
// under --home and one REST client before any subcommand runs. Subcommands
// drive the flows of package flows and print their terminal state.
package commands
