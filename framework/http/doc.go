// Package http provides Laravel-style request and response helpers for the
// JSON endpoints the framework mounts.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	name := req.Query("name", "default")
//	all  := req.QueryAll()        // map[string]string, ready for validation.Make
//	path := req.RouteParam("*")   // chi wildcard
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)           // raw JSON with status
//	res.Success(data)             // 200 {"data": ...}
//	res.Error(409, "conflict")    // {"message": "conflict"}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ServerError()             // 500 {"message": "Server Error."}
//	res.ValidationError(errs)     // 422 {"errors": {"field": ["msg"]}}
package http
