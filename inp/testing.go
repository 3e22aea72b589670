// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
)

// verbose turns verbose mode on in tests
func verbose() {
	chk.Verbose = true
}
