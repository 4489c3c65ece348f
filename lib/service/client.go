// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/canvas-foundation/canvas/lib/codec"
)

// callTimeout bounds one full request-response cycle against the
// admin socket. Admin operations are in-memory lookups; anything
// slower means the service is wedged.
const callTimeout = 30 * time.Second

// Call performs one request-response cycle against an admin socket:
// dial, send the CBOR request, read the Response envelope. The
// request value must carry the "action" field the server routes on.
//
// On a failure response, the server's error message is returned as an
// error. The raw "data" payload is returned for the caller to decode
// into an action-specific result type (see [CallInto]).
func Call(socketPath string, request any) (codec.RawMessage, error) {
	conn, err := net.DialTimeout("unix", socketPath, callTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(callTimeout))

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if !response.OK {
		if response.Error == "" {
			return nil, errors.New("request failed with no error message")
		}
		return nil, errors.New(response.Error)
	}
	return response.Data, nil
}

// CallInto performs Call and decodes the response data into result.
// A response with no data leaves result untouched.
func CallInto(socketPath string, request any, result any) error {
	data, err := Call(socketPath, request)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := codec.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
