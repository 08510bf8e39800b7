// Package analysis quantifies the accuracy of numerical trajectories:
// global error against an analytic or high-accuracy reference, and
// empirical convergence order across a geometric step-size sweep.
package analysis
