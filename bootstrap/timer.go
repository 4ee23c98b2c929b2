// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package bootstrap

import (
	"context"
)

// startEngine runs the timer engine's poll/dispatch loop until ctx is
// canceled. It blocks, so it must be launched in its own goroutine (see
// App.Start), mirroring how startHTTPServer blocks on ListenAndServe.
func (a *App) startEngine(ctx context.Context) {
	a.Logger.Info(ctx, "Timer engine dispatch loop starting")

	a.Engine.RunForever(ctx)

	a.Logger.Info(ctx, "Timer engine dispatch loop stopped")
}
