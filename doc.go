// Package dispatch implements the request-dispatch pipeline: a client that
// executes a request message through one of several interchangeable
// transport strategies and runs an ordered, header-triggered callback chain
// over the response.
//
// Transports come in two families:
//
//   - Internal: dispatches to an in-process handler resolved from a
//     startup-populated registry.
//   - External: wire-level drivers — a native net/http driver and a raw
//     socket stream driver — behind shared request preprocessing.
//
// The callback chain is where redirect-following lives: the default
// Location callback derives a follow request according to HTTP method
// semantics and re-executes it through a child client with bounded
// recursion depth. An optional cache interceptor may replace the whole
// transport and callback pipeline for a call.
//
// # Basic Usage
//
//	client, _ := dispatch.New(dispatch.Config{Follow: true})
//
//	req, _ := message.NewRequest("https://api.example.com/users/123")
//	resp, err := client.Execute(ctx, req)
//
// # Internal Dispatch
//
//	handlers := dispatch.NewHandlerRegistry()
//	handlers.Register(message.Route{Namespace: "app", Handler: "welcome"},
//	    func(req *message.Request, resp *message.Response) dispatch.Handler {
//	        return &WelcomeHandler{req: req, resp: resp}
//	    })
//
//	client, _ := dispatch.New(dispatch.Config{},
//	    dispatch.WithStrategy(dispatch.NewInternal(handlers)))
package dispatch
