/*
Package filters implements online adaptive linear filters.

An AdaptiveFilter owns an n-tap weight vector w. For every sample it
computes y = w·x and the a priori error e = d − y, then adds the update
returned by its LearningRule. Two rules are provided:

  - GNGD (NewGNGD): normalized gradient descent whose regularisation term is
    adapted online from the previous error and input.
  - AP (NewAP): affine projection over a sliding window of the last order
    samples, solving a regularised order × order system every step.

Custom rules plug in through New.

Example:

	f, err := filters.NewGNGD(4,
	    filters.WithMu(0.1),
	    filters.WithWeights(filters.Zeros()),
	)
	if err != nil {
	    return err
	}
	h, err := f.Run(d, x)
	if err != nil {
	    return err
	}
	mse, _ := metrics.MeanError(h.E[len(h.E)-50:], metrics.KindMSE)

Rules carry memory across calls, so a filter must not be used from two
goroutines at once. Clone a filter and use RunParallel to process
independent batches concurrently.
*/
package filters
