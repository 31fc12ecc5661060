// Command watch prints a recorded run, one frame per interval.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/adammck/biped/components/recorder"
)

var (
	path      = flag.String("db", "biped.db", "the recording to read")
	character = flag.String("character", "biped", "the character to watch")
	joint     = flag.Int("joint", 0, "the joint index to watch")
	interval  = flag.Int("interval", 1000/60, "the time between frames (ms)")
)

func main() {
	flag.Parse()

	r, err := recorder.Open(*path, *character)
	if err != nil {
		fmt.Printf("Error opening recording: %s\n", err)
		os.Exit(1)
	}
	defer r.Close()

	frames, err := r.Frames()
	if err != nil {
		fmt.Printf("Error reading frames: %s\n", err)
		os.Exit(1)
	}

	for i := range frames {
		f := &frames[i]
		fmt.Printf("Frame=%d Phase=%.3f\n", f.Frame, f.Phase)
		fmt.Printf("Root=(%.3f, %.3f, %.3f) Heading=%.3f\n", f.X, f.Y, f.Z, f.Heading)
		fmt.Printf("Gait=stand:%.2f walk:%.2f jog:%.2f crouch:%.2f\n", f.Stand, f.Walk, f.Jog, f.Crouch)

		joints, err := f.JointPositions()
		if err == nil && *joint >= 0 && *joint < len(joints) {
			j := joints[*joint]
			fmt.Printf("Joint[%d]=(%.3f, %.3f, %.3f)\n", *joint, j.X(), j.Y(), j.Z())
		}

		fmt.Println()
		time.Sleep(time.Duration(*interval) * time.Millisecond)
	}
}
