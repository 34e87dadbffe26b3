// Package app wires the pricelens service together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Resolve data and industries paths from the configuration
//	2. Initialize OpenTelemetry, business metrics and the runtime collector
//	3. Load the industry factor sets and open the catalog on the data root
//	4. Create the coefficient cache and the factor and health services
//	5. Build the chi router with middleware and handlers
//	6. Configure the HTTP server from the server timeouts
//
// # Usage
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within the
// configured shutdown timeout and flushes telemetry. The package never calls
// os.Exit; errors are returned to main.
package app
