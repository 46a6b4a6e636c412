// Package progress runs the background reporter that redraws the progress
// line while a timed operation executes.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Layout:  render.Layout{Name: "org/model", ShowPercentage: true},
//	    History: &lastTotal,
//	    Output:  func(s string) { fmt.Print(s) },
//	})
//
//	reporter.Start(time.Now())
//	err := load()
//	if err != nil {
//	    reporter.Abort()
//	} else {
//	    reporter.Stop()
//	}
//
// Every line is written with a leading carriage return so successive updates
// overwrite each other in a terminal. The final line ends with a newline.
// Stop and Abort return only after the reporter goroutine has exited.
package progress
