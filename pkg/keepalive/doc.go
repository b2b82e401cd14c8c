// ABOUTME: High-level keepaudio library API
// ABOUTME: Provides a simple Session API over the streaming engine
// Package keepalive keeps an audio output device electrically active by
// streaming a near-inaudible synthesized tone. Devices that power-gate
// their analog output stage stop producing an audible pop when real audio
// resumes, because the output never goes idle.
//
// This is the main entry point for library users; main.go is a thin CLI
// over it. For lower-level control see the internal engine and device
// packages.
//
// Example:
//
//	session, err := keepalive.Start(keepalive.Config{
//	    FrequencyHz: 25,
//	    LevelDB:     -70,
//	})
//	defer session.Stop()
//	err = session.Wait()
package keepalive
