// Package framepump streams fixed-size frames out of a child process.
//
// It launches an external media tool (ffmpeg emitting rawvideo, for
// example), drains the child's stdout on a dedicated goroutine, cuts the
// byte stream into frames of a fixed size and hands each complete frame to
// a FrameHandler. The calling goroutine stays free to poll the child, send
// it signals or kill it. Failures on the pump goroutine are captured and
// reported through Pump.Err.
//
// # Basic Usage
//
// Run covers the common case: spawn, pump, wait.
//
//	res, err := framepump.Run(ctx, "ffmpeg",
//	    []string{"-i", "in.mp4", "-f", "rawvideo", "-pix_fmt", "rgb24", "-"},
//	    640*480*3,
//	    framepump.FrameHandlerFunc(func(frame []byte) error {
//	        return display.Upload(frame)
//	    }),
//	    framepump.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%d frames, exit code %d\n", res.Frames, res.ExitCode)
//
// # Manual Control
//
// Spawn and NewPump expose each step:
//
//	proc, err := framepump.Spawn(ctx, "ffmpeg", args)
//	if err != nil {
//	    return err
//	}
//	defer proc.Close()
//
//	p, err := framepump.NewPump(proc, frameSize, handler)
//	if err != nil {
//	    return err
//	}
//
//	if err := p.Start(); err != nil {
//	    return err
//	}
//
//	// ... later, from the owner goroutine:
//	_ = proc.Terminate()
//	_, _ = proc.Wait(5 * time.Second)
//	_ = p.Join(0)
//
//	if err := p.Err(); err != nil {
//	    return err
//	}
//
// A pump never owns the process: the only way to stop it early is to
// terminate or kill the child, which closes the pipe the pump reads.
//
// # Frame Boundaries
//
// Frames are delivered in stream order, each exactly frameSize bytes and
// freshly allocated, so handlers may retain them. A trailing partial frame
// left when the stream ends is dropped and counted in Stats.DroppedBytes.
//
// # Error Handling
//
// Errors are typed and can be inspected with errors.Is and errors.AsType:
//
//	if spawnErr, ok := errors.AsType[*framepump.SpawnError](err); ok {
//	    fmt.Println("searched:", spawnErr.SearchedPaths)
//	}
//
//	if errors.Is(err, framepump.ErrTimeout) {
//	    // a Wait, Join or Communicate deadline elapsed
//	}
package framepump
