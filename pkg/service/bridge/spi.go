// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package bridge

import (
	"periph.io/x/conn/v3/spi"
)

// spiConn counts transactions on a periph SPI connection.
type spiConn struct {
	conn spi.Conn
	port string
}

// Tx performs a single transaction.
func (c *spiConn) Tx(w, r []byte) error {
	spiTxCounters.WithLabelValues(c.port).Inc()
	if err := c.conn.Tx(w, r); err != nil {
		spiTxErrorCounters.WithLabelValues(c.port).Inc()
		return err
	}
	return nil
}
