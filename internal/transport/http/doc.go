// Package http implements the HTTP handlers of the pricelens service.
// Handlers stay thin: they read route parameters, call the service layer and
// hand the result or the error to the shared JSON responder.
//
// # Routes
//
//	GET       /                                HTML index of industries and factors
//	GET       /industries                      configured industries
//	GET       /data/{industry}                 product names of an industry
//	GET       /data/{industry}/{product}       default factor values (last CSV row)
//	GET, POST /coefficients/{industry}/{product} ridge coefficients, cached by file digest
//	GET       /health, /health/live, /health/ready, /version
//	GET       /metrics                         Prometheus exposition
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    industry := chi.URLParam(r, "industry")
//	    result, err := h.service.DoSomething(r.Context(), industry)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    respond.JSON(w, r, result)
//	}
//
// # Error Handling
//
// Failures are answered with a single-member JSON object:
//
//	{"error": "Product file widget.csv not found in Pharma"}
//
// Missing industries and products map to 404, everything else to 500 with the
// raw error text.
package http
