// Package clips handles the filesystem and ffmpeg side of the pipeline:
// locating a recorded event clip, copying it into the working area, and
// converting the copy into a short looping GIF preview.
//
// This package only knows the surveillance platform's documented on-disk
// contract (date-partitioned recording folders, prefix+event-id filenames)
// and the transcoding tool's CLI contract (argv, exit codes). It has no
// broker awareness; the pipeline package orchestrates it.
//
// Filesystem layout consumed:
//
//	<source-root>/<YYYY-MM-DD>/<prefix><event-id>.mp4   read
//	<working-dir>/<event-id>.mp4                        write, transient
//	<working-dir>/<event-id>.gif                        write, persistent
package clips
