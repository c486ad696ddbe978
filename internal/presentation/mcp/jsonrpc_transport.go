package mcp

import (
	"encoding/json"
	"errors"
	"log"
)

func (s *Server) writeResponse(id json.RawMessage, result any, rpcErr *jsonRPCError) error {
	resp := jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: rpcErr}
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return err
		}
		resp.Result = b
	}
	return s.writeJSON(resp)
}

func (s *Server) writeResponseAndLog(method string, id json.RawMessage, result any, rpcErr *jsonRPCError) {
	if err := s.writeResponse(id, result, rpcErr); err != nil {
		log.Printf("event=write_response_failed method=%q error=%q", method, err.Error())
	}
}

func (s *Server) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.enc == nil {
		return errors.New("encoder not initialized")
	}
	return s.enc.Encode(v)
}
